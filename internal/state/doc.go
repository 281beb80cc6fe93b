// Package state provides the session store and its storage backends.
package state
