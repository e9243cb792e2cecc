/*
Package app contains the ABCI application wiring: the router dispatching
messages to handlers, the decorator chain and the StoreApp/BaseApp pair
that implements the tendermint abci.Application interface on top of a
weave.CommitKVStore.
*/
package app
