// Demo bot client: creates (or joins) a room and plays the race game by
// answering every round's target color.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/colorparty/network"
)

func send(c *websocket.Conn, msgID uint16, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, network.Frame(msgID, data))
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "bot", "display name")
	join := flag.String("join", "", "room code to join instead of creating")
	start := flag.Bool("start", false, "start the game once joined (host only)")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	if *join != "" {
		send(c, network.MsgTypeJoinRoom, map[string]string{"room_code": *join, "name": *name})
	} else {
		send(c, network.MsgTypeCreateRoom, map[string]string{"name": *name, "game_type": "race"})
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			pkt, err := network.ParsePacket(message)
			if err != nil {
				continue
			}
			log.Printf("<- msg %d: %s", pkt.MsgID, pkt.Data)

			switch pkt.MsgID {
			case network.MsgTypeCreateRoom, network.MsgTypeJoinRoom:
				if *start {
					time.Sleep(time.Second)
					send(c, network.MsgTypeStartGame, struct{}{})
				}
			case network.MsgTypeRaceRoundStart:
				var round struct {
					Target string `json:"target"`
				}
				if json.Unmarshal(pkt.Data, &round) == nil {
					// Humans take a moment; so does the bot.
					time.Sleep(200 * time.Millisecond)
					send(c, network.MsgTypeSubmitAnswer, map[string]string{"color": round.Target})
				}
			case network.MsgTypeRaceFinished:
				log.Println("Game over.")
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
