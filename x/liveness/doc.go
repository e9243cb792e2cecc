/*
Package liveness implements the liveness registry consumed by the escrow
extension.

The registry holds a single published root at a time. Only the registry
admin, declared in the "liveness" configuration, may publish a new root.
Escrows read the root through the RootSource interface and never write it.

Compressed liveness attestations are advisory records. Creating one never
touches escrow state, a failed creation only fails its own transaction.
*/
package liveness
