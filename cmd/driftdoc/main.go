// Command driftdoc is a minimal client that joins a single document on
// a collaboration server and logs every content change until
// interrupted. It submits no edits of its own.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftdoc/client/internal/cache"
	"github.com/driftdoc/client/internal/capability"
	"github.com/driftdoc/client/internal/session"
	"github.com/driftdoc/client/internal/transport"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "collaboration server URL")
	docID := flag.String("doc", "", "document ID to open (required)")
	flag.Parse()

	if *docID == "" {
		log.Fatal("-doc is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cache.NewMemoryStore()

	mgr := session.NewManager(session.ManagerConfig{
		Cache: store,
		Dial: func(ctx context.Context, docID string) (session.Conn, error) {
			client, err := transport.Dial(ctx, *serverURL)
			if err != nil {
				return nil, err
			}

			return client, nil
		},
	})

	sess, err := mgr.Open(ctx, *docID)
	if err != nil {
		log.Fatalf("open %s: %v", *docID, err)
	}

	guard := capability.NewGuard(sess, capability.Editor)

	updates := make(chan session.Update, 16)
	sess.Subscribe(updates)

	go func() {
		if err := sess.Listen(); err != nil {
			log.Printf("session %s: %v", *docID, err)
		}
	}()

	go func() {
		for update := range updates {
			log.Printf("doc %s: version %d: %q", *docID, update.Version, update.Content)
		}
	}()

	log.Printf("joined %s as %s, content: %q", *docID, guard.Role(), sess.Content())

	<-ctx.Done()

	if err := mgr.CloseAll(); err != nil {
		log.Printf("close: %v", err)
	}
}
