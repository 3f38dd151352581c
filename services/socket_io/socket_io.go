package socket_io

import (
	"Trivium/services/identity"
	socketio_types "Trivium/services/socket_io/types"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

const handlerTimeout = 5 * time.Second

type MySocketServer socketio_types.SocketServer

func NewServer() *MySocketServer {
	return (*MySocketServer)(socketio_types.NewSocketServer())
}

func (sio *MySocketServer) registry() *socketio_types.SocketServer {
	return (*socketio_types.SocketServer)(sio)
}

func (sio *MySocketServer) EmitToRoom(roomID string, event string, payload any) error {
	return sio.registry().EmitToRoom(roomID, event, payload)
}

func (sio *MySocketServer) Online() int {
	return sio.registry().Online()
}

// Start registers the connection handlers and mounts the transport on router.
// Clients authenticate with the bearer token in auth.authorization.
func (sio *MySocketServer) Start(router *gin.Engine, verifier identity.Verifier, notifier *Notifier, allowedOrigins []string) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(false)
	// NOTE: generous ping values so slow mobile networks are not dropped
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      corsOrigin(allowedOrigins),
		Credentials: true,
	})

	sio.Sio_server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)

		who, ok := authenticate(client, verifier)
		if !ok {
			client.Disconnect(true)
			return
		}

		sio.registry().AddConnection(who.UID)
		log.Printf("[SOCKET] %s connected (%s)", who.UID, client.Id())

		client.On("joinRoom", func(args ...any) {
			identifier, ack := roomArgs(args)
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()

			roomID, err := notifier.Subscribe(ctx, identifier, func(roomID string) {
				client.Join(socket.Room(roomID))
			})
			if err != nil {
				log.Printf("[SOCKET] %s could not join %q: %v", who.UID, identifier, err)
				reply(ack, gin.H{"success": false, "error": errorMessage(err)})
				return
			}
			log.Printf("[SOCKET] %s joined room %s", who.UID, roomID)
			reply(ack, gin.H{"success": true, "roomId": roomID})
		})

		client.On("updateScore", func(args ...any) {
			identifier, user, ok := scoreArgs(args)
			if !ok {
				client.Emit("error", gin.H{"error": "updateScore needs {roomId, user}"})
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()

			if err := notifier.RelayScore(ctx, identifier, user); err != nil {
				client.Emit("error", gin.H{"error": errorMessage(err)})
			}
		})

		client.On("disconnect", func(args ...any) {
			sio.registry().RemoveConnection(who.UID)
			log.Printf("[SOCKET] %s disconnected (%s): %v", who.UID, client.Id(), args)
		})
	})

	handler := sio.Sio_server.ServeHandler(c)
	router.POST("/socket.io/*f", gin.WrapH(handler))
	router.GET("/socket.io/*f", gin.WrapH(handler))

	log.Println("[SOCKET] socket server started")
}

func (sio *MySocketServer) Close() {
	sio.Sio_server.Close(nil)
}

func authenticate(client *socket.Socket, verifier identity.Verifier) (*identity.Identity, bool) {
	token, err := handshakeToken(client.Handshake().Auth)
	if err != nil {
		log.Printf("[AUTH] socket %s: %v", client.Id(), err)
		client.Emit("error", gin.H{"error": "Authentication failed: " + errorMessage(err)})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	who, err := verifier.Verify(ctx, token)
	if err != nil {
		log.Printf("[AUTH] socket %s: %v", client.Id(), err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid token. Set it on the 'authorization' field with the 'Bearer ' prefix.",
		})
		return nil, false
	}
	return who, true
}

func handshakeToken(auth any) (string, error) {
	authData, ok := auth.(map[string]any)
	if !ok {
		return "", utils.NewError(utils.KindUnauthorized, "missing auth data")
	}
	token, ok := authData["authorization"].(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", utils.NewError(utils.KindUnauthorized, "missing authorization token")
	}
	return token, nil
}

type ackFunc = func([]any, error)

// roomArgs accepts joinRoom("ABC123", ack) and joinRoom({roomId}, ack).
func roomArgs(args []any) (string, ackFunc) {
	var ack ackFunc
	if len(args) > 0 {
		if fn, ok := args[len(args)-1].(func([]any, error)); ok {
			ack = fn
			args = args[:len(args)-1]
		}
	}
	if len(args) == 0 {
		return "", ack
	}
	switch v := args[0].(type) {
	case string:
		return v, ack
	case map[string]any:
		id, _ := v["roomId"].(string)
		return id, ack
	}
	return "", ack
}

func scoreArgs(args []any) (string, any, bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	data, ok := args[0].(map[string]any)
	if !ok {
		return "", nil, false
	}
	roomID, _ := data["roomId"].(string)
	user, hasUser := data["user"]
	if roomID == "" || !hasUser {
		return "", nil, false
	}
	return roomID, user, true
}

func reply(ack ackFunc, payload any) {
	if ack != nil {
		ack([]any{payload}, nil)
	}
}

func errorMessage(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Kind != utils.KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

func corsOrigin(origins []string) any {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return "*"
	}
	return origins
}
