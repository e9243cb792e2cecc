/*
Package errors implements registered, code carrying errors.

Every failure returned to a client carries a stable ABCI code, so that a
calling backend can branch on it without parsing messages. Reuse the errors
declared here when they describe the failure, and declare extension specific
root errors with Register(code, description).

Wrap errors with Wrap, Wrapf or ErrXyz.New at the point of creation to attach
a stack trace. Only the most inner wrap records one.

	%s  the error message
	%+v the message followed by the stack trace
*/
package errors
