package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer wraps the socket.io server and counts open connections per
// user uid.
type SocketServer struct {
	Sio_server *socket.Server
	// uid -> number of open sockets
	UserConnections map[string]int
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		Sio_server:      socket.NewServer(nil, nil),
		UserConnections: make(map[string]int),
	}
}

func (s *SocketServer) AddConnection(uid string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[uid]++
}

func (s *SocketServer) RemoveConnection(uid string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.UserConnections[uid] <= 1 {
		delete(s.UserConnections, uid)
		return
	}
	s.UserConnections[uid]--
}

func (s *SocketServer) IsOnline(uid string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.UserConnections[uid] > 0
}

// Online is the number of distinct users with at least one open socket.
func (s *SocketServer) Online() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.UserConnections)
}

// EmitToRoom sends event to every socket joined to roomID.
func (s *SocketServer) EmitToRoom(roomID string, event string, payload any) error {
	return s.Sio_server.To(socket.Room(roomID)).Emit(event, payload)
}
