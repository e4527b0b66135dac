// Package hairstrand decodes USC-HairSalon hairstyle files (.data) into a
// line-segment graph: a flat vertex list plus edges joining consecutive
// vertices of each strand.
//
// File layout (little-endian, no magic, no version):
//
//	int32 strand_count
//	repeat strand_count times:
//	  int32   vertex_count       // 1 or 100 in the reference dataset
//	  float32 xyz[vertex_count*3]
//
// Strands with fewer than two vertices are roots and contribute nothing.
// Any structural violation surfaces as a *FormatError and aborts the decode.
//
// Components:
//   - Decode / DecodeBytes: one pass over a borrowed byte source.
//   - Encode / EncodeStrands: the inverse, used for fixtures and StrandCodec.
//   - Loader: file-scoped loading with an optional geometry cache behind a
//     provider.Provider (Ristretto, BigCache, Redis) and a codec.Codec.
//     Loader.Purge orphans a whole namespace through a genstore.GenStore.
//
// Typical use:
//
//	g, err := hairstrand.Decode(f, hairstrand.WithPolicy(hairstrand.PolicyReference))
//	if err != nil {
//	    var fe *hairstrand.FormatError
//	    if errors.As(err, &fe) { ... }
//	}
package hairstrand
