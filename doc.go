/*
Package weave defines the common interfaces that tie together the various
subpackages of the lastwill chain, as well as implementations of some of the
simpler components.

Context is passed through context.Context between the app, decorators and
handlers. Block level information (height, header time, chain id, logger)
is stored under private keys and exposed with a pair of functions per value:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set, so that lower level modules
cannot overwrite it.
*/
package weave
