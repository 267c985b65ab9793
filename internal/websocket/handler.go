package websocket

// ServeWs attaches an upgraded connection to the hub and blocks until it
// closes.
func ServeWs(hub *Hub, conn Conn, stationID string) {
	client := NewClient(hub, conn, stationID)
	if !hub.Join(client) {
		_ = conn.Close()
		return
	}
	go client.writePump()
	client.readPump()
}
