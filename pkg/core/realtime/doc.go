// Package realtime implements a duplex streaming client for a realtime
// conversational agent speaking the Azure OpenAI realtime protocol over a
// websocket.
//
// # Architecture
//
// A session runs exactly two engine goroutines against one connection:
//
//   - The receive engine consumes server events, updates session state, and
//     enqueues renderable fragments (text deltas, PCM frames) to the
//     outbound queue.
//   - The send engine drains the inbound queue of user input units (text
//     lines or PCM frames), converts each into protocol requests, and runs
//     the barge-in interruption protocol in audio mode.
//
// Capture sources and render sinks are external collaborators: producers
// push input units into the session and consumers drain the outbound queue.
// The unbounded queues decouple device-speed I/O from network-speed I/O.
//
// # Data Flow
//
//	capture → inbound queue → send engine → websocket → remote agent
//	remote agent → websocket → receive engine → outbound queue → render
//
// # Interruption
//
// In audio mode, when the remote agent's voice-activity detector reports
// user speech while agent audio is still streaming, the send engine clears
// the outbound queue, cancels the in-flight response, and truncates the
// interrupted item. The cycle fires at most once per overlap.
//
// # Usage
//
//	conn, err := realtime.Dial(ctx, endpoint, header)
//	if err != nil {
//		return err
//	}
//	session, err := realtime.Connect(conn, realtime.Options{
//		Mode:         realtime.ModeAudio,
//		Instructions: "Answer briefly.",
//		Voice:        "sage",
//	})
//	if err != nil {
//		return err
//	}
//	go func() {
//		for frame := range micFrames {
//			session.Push(realtime.AudioUnit(frame))
//		}
//	}()
//	for {
//		frag, ok := session.Output().Pop()
//		if !ok {
//			break
//		}
//		render(frag)
//	}
package realtime
