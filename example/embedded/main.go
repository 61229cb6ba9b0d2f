package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	cardioedge "github.com/FIAP-IA2024/CARDIO-IOT-edge"
)

// Runs the agent fully in-process: no broker, the channel transport hands
// every published payload to a local consumer goroutine.
func main() {
	cfg := &cardioedge.Config{
		DeviceID: "cardio-embedded",
		Policy: cardioedge.Policy{
			BufferCapacity: 50,
			TickInterval:   time.Second,
		},
		MQTT: cardioedge.MQTTConfig{
			DataTopic:  "cardio/data",
			AlertTopic: "cardio/alerts",
		},
		Simulation: cardioedge.SimulationConfig{
			Enabled:         true,
			MotionAmplitude: 0.8,
		},
	}

	transport, published, closeTransport := cardioedge.NewChannelTransport("embedded", 32)
	defer closeTransport()

	rt, err := cardioedge.NewRuntime(cfg, cardioedge.WithTransport(transport))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	go consume(published)

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("agent exited: %v", err)
	}
}

func consume(published <-chan cardioedge.Published) {
	for p := range published {
		switch p.Topic {
		case "cardio/alerts":
			var a cardioedge.Alert
			if err := json.Unmarshal(p.Payload, &a); err == nil {
				fmt.Printf("ALERT %s (%s): %s\n", a.Type, a.Severity, a.Message)
			}
		default:
			var s cardioedge.Sample
			if err := json.Unmarshal(p.Payload, &s); err == nil {
				fmt.Printf("sample t=%dms temp=%.1f hum=%.1f bpm=%d move=%.2f\n",
					s.Timestamp, s.Temperature, s.Humidity, s.BPM, s.Movement)
			}
		}
	}
}
