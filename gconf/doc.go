/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration entity stored under the
"_c:<package>" key. It is created from the "conf" section of the genesis
file and can later be patched by a message signed by the configuration
owner.
*/
package gconf
