package client

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

type tickerSubscribeRequest struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// Listen opens a ticker stream and feeds raw frames into tickerChannel.
// On any read failure the connection is dropped and re-dialed after a
// short pause, same as on the initial dial.
func Listen(address string, tickerChannel chan<- []byte, symbols []string, connectionId int64) *websocket.Conn {
	connection, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		log.Printf("[ws_%d] Events [%s]: %s, wait and reconnect...", connectionId, address, err.Error())
		time.Sleep(time.Second * 3)
		connectionId++

		return Listen(address, tickerChannel, symbols, connectionId)
	}

	go func() {
		for {
			_, message, err := connection.ReadMessage()
			if err != nil {
				log.Printf("[ws_%d] Events, read [%s]: %s", connectionId, address, err.Error())

				_ = connection.Close()
				log.Printf("[ws_%d] Events, wait and reconnect...", connectionId)
				time.Sleep(time.Second * 3)
				connectionId++
				Listen(address, tickerChannel, symbols, connectionId)
				return
			}

			tickerChannel <- message
		}
	}()

	if len(symbols) > 0 {
		subscribeRequest := tickerSubscribeRequest{
			Type:    "ticker",
			Symbols: symbols,
		}
		serialized, _ := json.Marshal(subscribeRequest)
		_ = connection.WriteMessage(websocket.TextMessage, serialized)
	}

	return connection
}
