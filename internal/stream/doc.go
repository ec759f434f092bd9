// Package stream serves simulation frames to websocket clients.
//
// A [Hub] tracks connected clients, each with a buffered send channel and
// its own write pump. [Run] is the host loop: it owns the state, advances
// it on a ticker and hands the hub one frame per step. Clients only ever
// see encoded copies, so a slow reader cannot stall the simulation; frames
// it has no room for are dropped.
//
// Every message is a JSON envelope:
//
//	{"type": "table", "data": {"width": 10, "height": 20, "balls": 16}}
//	{"type": "frame", "data": {"time": 0.016, "balls": [...]}}
package stream
