// Package graphql is the remote-call boundary between storesync and the
// store platform's GraphQL API.
//
// It owns the transport (HTTP, bearer auth, static request pacing) and the
// closed set of wire error shapes that the resilience package classifies:
// *RequestError for HTTP-level failures, GraphQLErrors for application-level
// failures, and untouched transport errors for everything below HTTP. No
// other package constructs requests or inspects raw responses.
package graphql
