package chat

// Transport is the publish/subscribe fan-out primitive the coordinator talks
// to. One Transport per namespace. Delivery is best-effort: a failed send to
// one connection must not affect the others, and never rolls back registry
// state.
type Transport interface {
	// EmitAll delivers an event to every connection in the namespace.
	EmitAll(event string, payload any)
	// EmitRoom delivers an event to every connection joined to roomID.
	EmitRoom(roomID, event string, payload any)
	// EmitConn delivers an event to a single connection.
	EmitConn(connID, event string, payload any)

	// Join and Leave maintain the transport-level room roster.
	Join(roomID, connID string)
	Leave(roomID, connID string)
	// ClearRoom drops every connection from roomID's roster.
	ClearRoom(roomID string)
}
