// Package lsbsteg hides byte payloads in the least-significant bits of a carrier
// buffer (typically raw pixel data) and reads them back.
//
// Layers:
//   - Pack/Unpack: raw bit packing. Each payload byte is spread LSB-first over
//     8/step carrier bytes, step bits per byte. High bits are never touched.
//   - Encode/Decode: framing. A big-endian length of WordSize bytes is packed
//     ahead of the payload so Decode needs no out-of-band size.
//   - Steg[V]: typed values via a pluggable Codec[V], a small versioned envelope
//     inside the frame, and optional storage of carriers in a Provider
//     (e.g. Ristretto, BigCache, Redis).
//
// Carriers are borrowed, never retained. Pack and Encode return the unused tail so
// several payloads can be chained into one carrier:
//
//	rest, _ := lsbsteg.Encode(pixels, first, lsbsteg.Step2)
//	_, _    = lsbsteg.Encode(rest, second, lsbsteg.Step2)
//
//	a, rest, _ := lsbsteg.DecodeNext(pixels, lsbsteg.Step2)
//	b, _, _    := lsbsteg.DecodeNext(rest, lsbsteg.Step2)
//
// Step must be 1, 2 or 4. The codec functions panic with *StepError otherwise;
// encoder and decoder must agree on step out of band. No encryption is applied.
package lsbsteg
