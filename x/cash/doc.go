/*
Package cash keeps the coin balances of all addresses and moves value
between them.

There is no logic in the coins, except that the balance of any coin may
not go below zero. Other extensions hold value in custody by moving it to
an address derived from their own state, see Controller.MoveCoins.
*/
package cash
