package misc

// Nothing is the empty argument or reply of an rpc call.
type Nothing struct{}
