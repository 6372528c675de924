// Package nethttp exposes webhook handling over net/http.
//
// NewInboundRequest decodes an urlencoded or multipart POST into the
// framework-neutral core.InboundRequest. Handler and NewRouter answer each
// call with the status resolved from the dispatch result, which providers
// use to decide whether to redeliver.
package nethttp
