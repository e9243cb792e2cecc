/*
Package x contains the standard extensions and the helpers they share.

Extensions implement common functionality (Handler, Decorator,
Initializer, query handlers) and are combined together to construct an
application. Each of them is independent of the others and only depends
on the root weave package, the orm and the Authenticator defined here.
*/
package x
