// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/creachadair/duplex"
	"github.com/creachadair/duplex/peer"
)

func ExampleExchange() {
	// The sender emits a few words and ignores its input.
	send := duplex.TransformFunc[string, string](func(ctx context.Context, _ <-chan string, out chan<- string) error {
		for _, w := range strings.Fields("all your base") {
			out <- w
		}
		return nil
	})

	// The receiver prints what arrives and sends nothing back.
	recv := duplex.TransformFunc[string, string](func(ctx context.Context, in <-chan string, _ chan<- string) error {
		for w := range in {
			fmt.Println(w)
		}
		return nil
	})

	if _, err := duplex.Exchange[string, string](context.Background(), send, recv, nil); err != nil {
		log.Fatalf("Exchange: %v", err)
	}
	// Output:
	// all
	// your
	// base
}

func ExampleEndpoint() {
	// A standalone endpoint can be driven directly through its channels.
	ep := duplex.NewEndpoint[duplex.Message, duplex.Message](nil).Start(
		context.Background(), peer.NewServer(nil))

	ep.Inbound().Write([]byte(`[{"id":0,"message":"Client is ready"}]`))
	ep.Inbound().Complete()

	out, err := io.ReadAll(ep.Outbound())
	if err != nil {
		log.Fatalf("Read: %v", err)
	}
	if err := ep.Wait(); err != nil {
		log.Fatalf("Wait: %v", err)
	}
	fmt.Println(string(out))
	// Output:
	// [{"id":0,"message":"Server is ready"},{"id":1,"message":"Server has processed 0 from client"}]
}
