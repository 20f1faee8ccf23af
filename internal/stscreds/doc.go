// Package stscreds obtains temporary credentials for a role from AWS STS.
//
// The Client makes exactly one AssumeRole call per request. It does not cache,
// refresh ahead of expiry or persist the result: callers such as the
// credential endpoint are polled by SDKs that already handle expiry.
package stscreds
