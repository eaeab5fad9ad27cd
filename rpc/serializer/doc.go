// Package serializer converts common.Message values to bytes and back.
//
// Two implementations exist:
//
//   - JSON (NewJSONSerializer): human readable, message types are written as
//     strings. This is the default used by the dtodo commands.
//
//   - GOB (NewGOBSerializer): Go's gob encoding. Only usable between Go peers.
//
// Both implementations are stateless and safe for concurrent use.
//
//	s := serializer.NewJSONSerializer()
//	data, err := s.Serialize(msg)
//	// ... send data ...
//	var received common.Message
//	err = s.Deserialize(data, &received)
package serializer
