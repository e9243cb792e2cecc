/*
Package escrow implements a liveness-gated inheritance escrow.

A testator deposits value for a beneficiary. The value stays in custody of
an address derived from both parties for as long as the testator keeps
refreshing liveness. Once the testator fails to do so within the total
timeout, the beneficiary together with the verifier named at creation may
execute the escrow. Execution releases the deposit and discloses the
encrypted secret and the key material to the beneficiary.

The testator can cancel at any time before execution. Cancellation returns
everything held in custody and removes the record.

Liveness refreshes are checked by a ProofVerifier selected per record:
verification is bypassed for records created in debug mode, development
chains use the mixing digest and production chains require a merkle
inclusion proof against the published liveness root.
*/
package escrow
