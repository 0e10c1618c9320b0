// Package api holds typed wrappers for the blog backend endpoints.
//
// Every call goes through a [Doer], normally the request gateway, so token
// injection, error classification, retries and failure reporting apply
// uniformly. The wrappers add no policy of their own beyond shaping requests
// and decoding responses. [Users] keeps a small LRU of public profiles.
package api
