// Package credserver implements the credential endpoint polled by AWS SDKs
// through AWS_CONTAINER_CREDENTIALS_FULL_URI.
//
// A single route, GET /get-credentials, checks the Authorization header
// against the shared token and then performs one AssumeRole call. The
// response uses the container credentials provider shape:
//
//	{"AccessKeyId":"...","SecretAccessKey":"...","Token":"...","Expiration":"2016-02-25T06:03:31Z","RoleArn":"..."}
//
// Status codes:
//   - 400 Authorization header missing or not printable text
//   - 403 Authorization header does not match the token
//   - 502 STS call failed or returned no credentials
//
// Handlers share no mutable state, so concurrent requests are independent.
package credserver
