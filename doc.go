// Package waverobot is a client framework for building wave robots:
// automated participants that join waves, observe events, and mutate
// wavelet content through the robot wire protocol.
//
// # Layout
//
//   - wave: the document mirror (wavelets, blips, annotations, elements)
//     and the operation queue that records intended mutations
//   - events: inbound event bundles and the handler dispatcher
//   - capability: declared event interests and the version hash published
//     in capabilities.xml
//   - oauth: one-legged OAuth signing of outbound requests and validation
//     of inbound ones
//   - rpc: the active API client that submits queued operations to a
//     gateway and rebuilds mirrors from its responses
//   - robot: the HTTP surface a wave server talks to, tying the layers
//     together
//   - config: file-backed robot configuration with schema validation
//   - metric: Prometheus instrumentation
//
// A minimal robot binds handlers, serves the robot router, and lets the
// framework do the rest:
//
//	r, err := robot.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Handle(events.BlipSubmitted, func(ev *events.Event) error {
//	    _, err := ev.Wavelet().Reply("\nThanks!")
//	    return err
//	})
//	http.ListenAndServe(":8080", r.Router())
package waverobot
