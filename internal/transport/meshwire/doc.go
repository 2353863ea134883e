// Package meshwire encodes and decodes the subset of the radio's protobuf API
// that meshchat needs, and the stream framing that carries it over serial and TCP.
//
// Messages are hand-coded with protowire rather than generated, so only the fields
// below exist; every other field is skipped on decode.
//
//	FromRadio  packet=2 my_info=3 node_info=4 config_complete_id=7 rebooted=8
//	ToRadio    packet=1 want_config_id=3 disconnect=4 heartbeat=7
//	MeshPacket from=1 to=2 channel=3 decoded=4 encrypted=5 id=6 hop_limit=9 want_ack=10
//	Data       portnum=1 payload=2
//	NodeInfo   num=1 user=2
//	User       id=1 long_name=2 short_name=3
//	MyNodeInfo my_node_num=1
//
// A frame is 0x94 0xC3, a big-endian uint16 length, then that many protobuf bytes.
package meshwire
