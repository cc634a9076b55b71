// Package jwt is the claims codec for the token lifecycle engine: it mints
// signed access and refresh tokens and parses them back with strict
// validation semantics.
//
// The split between [Manager.Decode] (structure and signature only) and
// [Manager.Parse] (full temporal and claim validation) exists so that
// revocation paths can accept already-expired tokens while verification
// paths never do. Revocation and replay state live outside this package;
// the codec is a pure function of claims and key material.
package jwt
