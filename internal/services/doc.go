// Package services builds the node's domain services from the configuration.
//
// The server and the CLI use the same Services so that both verify signatures, resolve blocks
// and derive order stages the same way.
package services
