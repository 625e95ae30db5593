package snitray

import "strings"

// DefaultItemPath is the object path an SNI item is assumed to live at when
// only a bus name is known.
const DefaultItemPath = "/StatusNotifierItem"

// parseAddress splits an item address of the form "<destination><path>"
// (e.g. ":1.58/StatusNotifierItem") into its destination bus name and
// object path.
//
// If address contains no '/', it is treated as a bare bus name and the path
// defaults to [DefaultItemPath]. Otherwise the first '/' begins the object
// path.
func parseAddress(address string) (destination, path string) {
	dest, rest, ok := strings.Cut(address, "/")
	if !ok {
		return address, DefaultItemPath
	}
	return dest, "/" + rest
}

// joinAddress reassembles the canonical address string from a destination
// and object path, the inverse of parseAddress.
func joinAddress(destination, path string) string {
	return destination + path
}
