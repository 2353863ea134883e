// Package messaging implements the text message paths between the operator and
// the mesh.
//
// Receiver is a transport.Handler. For each inbound packet it runs an explicit
// filter/decode step (Decode) and, when that yields a text message, resolves the
// sender through the node directory, displays the message and queues an audit
// entry. Packets that are not text, carry no sender, are still encrypted, or are
// not valid UTF-8 are expected radio traffic and are dropped without a trace at
// any level above debug.
//
// Sender broadcasts operator text. A failed broadcast is shown to the operator and
// is not logged; it never ends the session.
package messaging
