// Package audit provides the asynchronous event dispatcher behind the root
// package's audit surface. Events are buffered on a channel and forwarded to
// a sink off the request path; Close drains the buffer before returning.
package audit
