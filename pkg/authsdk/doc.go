// Package authsdk is a Go client for the warden authentication service.
//
// The same request and response types are shared by the server's HTTP
// handlers, so the wire contract lives in exactly one place.
package authsdk
