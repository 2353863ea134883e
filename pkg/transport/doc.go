// Package transport defines the boundary between meshchat and a packet-radio mesh.
//
// This package defines the abstractions every radio link implementation satisfies:
//   - NodeRecord: a raw node entry as reported by the radio (number plus optional user profile)
//   - Packet: one inbound mesh packet, with its decoded application payload when available
//   - Transport: snapshot nodes, subscribe to inbound packets, broadcast text, close
//   - Subscription: cancellable handle returned by Subscribe
//
// The interfaces use Go idioms:
//   - context.Context on operations that may block on the radio
//   - Handler callbacks invoked from the transport's own goroutine
//   - io.Closer for releasing the underlying serial port or socket
//   - Typed errors (TransportError, SendError) usable with errors.As
//
// Example usage:
//
//	tr, err := open(ctx, "/dev/ttyUSB0")
//	if err != nil {
//		return err // *TransportError
//	}
//	defer tr.Close()
//
//	nodes, err := tr.Nodes(ctx)
//	if err != nil {
//		return err
//	}
//
//	sub, err := tr.Subscribe(func(pkt *transport.Packet) {
//		if pkt.Decoded != nil && pkt.Decoded.Port == transport.PortTextMessage {
//			fmt.Println(string(pkt.Decoded.Payload))
//		}
//	})
//	if err != nil {
//		return err
//	}
//	defer sub.Unsubscribe()
//
//	err = tr.BroadcastText(ctx, "hello mesh")
//
// Handlers may be invoked concurrently with the caller's goroutine; implementations
// document whether packets are delivered sequentially.
package transport
