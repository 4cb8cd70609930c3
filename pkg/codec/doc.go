// Package codec provides the fixed-width binary layout used by wbin weather archives.
//
// An archive is a single file made of one header followed by a run of
// fixed-size observation records. Because every record has the same size,
// the position of record i is always HeaderSize + i*RecordSize and no
// offset table is stored.
//
// # Header Format
//
//	[Magic(4)][Version(4)][CreatedAt(8)][RecordCount(4)][Location(50)][Latitude(4)][Longitude(4)]
//
// Fields:
//   - Magic: the literal bytes "WBIN"
//   - Version: 32-bit unsigned format version (little-endian)
//   - CreatedAt: 64-bit signed Unix timestamp in seconds (little-endian)
//   - RecordCount: 32-bit unsigned number of records that follow (little-endian)
//   - Location: zero-padded station or city label
//   - Latitude, Longitude: IEEE-754 single precision (little-endian)
//
// The header is HeaderSize (78) bytes. RecordCount lives at RecordCountOffset
// so a writer can rewrite it in place without touching anything else.
//
// # Record Format
//
// A record is RecordSize (472) bytes. Fields are packed back to back in the
// order declared on DataEntry with no alignment padding. Integers are
// little-endian two's complement, floating point values are IEEE-754 bit
// patterns in little-endian order.
//
// # Text Fields
//
// Every text field has a fixed capacity that includes a terminating zero
// byte. Encoding copies at most capacity-1 bytes and zero-fills the rest.
// Decoding stops at the first zero byte. Values longer than the capacity are
// truncated, which is the only lossy part of the format.
//
// # Missing Values
//
// No field is optional at the byte level. A reading that was not provided by
// the source is stored as zero (or the empty string for text).
//
// # Usage
//
//	c := codec.NewCodec()
//
//	hdr := codec.NewHeader("Timisoara", 45.7558, 21.2322)
//	raw := c.EncodeHeader(hdr)
//
//	decoded, err := c.DecodeHeader(raw)
//	if err != nil {
//	    var verr *codec.VersionError
//	    if errors.As(err, &verr) {
//	        // written by a newer release
//	    }
//	    return err
//	}
//
// # Thread Safety
//
// Codec instances hold no state and are safe for concurrent use.
package codec
