// Package events delivers pipeline progress events to their consumers.
//
// A Sink receives every event of a run in order. WriterSink renders events
// to a terminal or a JSON-lines file, NATSSink publishes them on a
// per-run subject, and Fanout copies one stream to several sinks:
//
//	┌──────────┐         ┌────────┐────────▶ WriterSink (stdout)
//	│  Engine  │────────▶│ Fanout │
//	└──────────┘         └────────┘────────▶ NATSSink (text2cypher.events.<run>)
//
// A failing sink never stops a run. Fanout reports sink errors to its
// ErrorHandler and keeps delivering to the remaining sinks.
package events
