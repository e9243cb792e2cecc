/*
Package utils contains decorators that every transaction of the escrow
chain passes through: panic recovery, logging, savepoints that discard
partial writes of a failed message, and result tagging.
*/
package utils
