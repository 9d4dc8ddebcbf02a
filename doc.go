// Package framed turns any duplex byte transport into a typed,
// message-oriented channel.
//
// Each message travels as one length-prefixed frame; the payload inside the
// frame is produced by a pluggable serialization codec (see the codec
// subpackage, protobuf by default). The read side is a blocking message
// producer, the write side a buffered sink with an explicit flush, and a
// session can be split into independent read and write halves that share one
// transport safely from separate goroutines.
//
// Wire format:
//
//	[Length:2/4/8B big-endian][Payload...]
//
// Length is the number of payload bytes that follow. Prefix width and the
// maximum frame size are deployment constants carried in Config; both ends of
// a connection must agree on them, no negotiation is performed.
//
// Typical use over a net.Conn:
//
//	sess, err := framed.NewSession(conn, codec.Proto[pb.Event](), codec.Proto[pb.Event]())
//	...
//	rd, wr := sess.Split()
//	go func() {
//		wr.Send(ev)
//		wr.Flush()
//		wr.Close()
//	}()
//	for {
//		ev, err := rd.Recv()
//		...
//	}
package framed
