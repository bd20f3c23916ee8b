// Package weights reads per-event systematic universe weights from a
// columnar event store.
//
// The store is an Apache Arrow IPC stream with one row per event and the
// branches below. List branches hold one entry per neutrino (or per
// neutrino and parameter) of the event.
//
//	rec.hdr.run                        uint32
//	rec.hdr.subrun                     uint32
//	rec.hdr.evt                        uint32
//	rec.mc.nu.index                    list<int32>    neutrino ids
//	rec.mc.nu.wgt..length              list<int32>    parameters per neutrino
//	rec.mc.nu.wgt.univ..idx            list<int64>    block start per parameter
//	rec.mc.nu.wgt.univ..length         list<int64>    block length per parameter
//	rec.mc.nu.wgt.univ..totarraysize   int64          flattened universes in the event
//	rec.mc.nu.wgt.univ                 list<float32>  flattened universes
//
// The offset table is read from the first event that carries a neutrino.
// For parameter p the universe block of neutrino n in event row i is
//
//	univ[i][l*n + idx[p] : l*n + idx[p] + length[p]]
//
// where the per-neutrino stride l is totarraysize / len(wgt..length).
//
// Extraction runs in two passes over the stream. The first uses only the
// header branches of each decoded batch: it explodes each event into
// (run, subrun, event, nu_id) keys, keeps the first store row of every key
// and right-joins the selected events onto it. The second keeps a running
// row offset and copies each joined event's block when its store row falls
// inside the current batch window.
//
// Both passes decode whole record batches. The byte budget is enforced when
// a store is written (Writer flushes before a batch would exceed it); on
// read an oversized batch is only reported at WARN.
package weights
