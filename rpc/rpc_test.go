package rpc

import (
	"strings"
	"testing"

	"FractalAnimator/misc"
)

type Echo struct{}

func (e *Echo) Shout(in string, out *string) error {
	*out = strings.ToUpper(in)
	return nil
}

func (e *Echo) Finished(in misc.Nothing, out *misc.Nothing) error {
	return ErrDone
}

type quiet struct{}

func TestServerClient(t *testing.T) {
	for _, transport := range []string{Tcp, Http} {
		t.Run(transport, func(t *testing.T) {
			server, err := NewServer(transport, &Echo{}, "127.0.0.1:0", "EchoServer")
			if err != nil {
				t.Fatalf("NewServer: %v", err)
			}
			if err := server.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			defer server.Stop()
			if strings.HasSuffix(server.Addr(), ":0") {
				t.Fatalf("Addr should carry the real port, got %s", server.Addr())
			}

			client, err := NewClient(transport, server.Addr(), "EchoClient")
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			var reply string
			if err := client.Call("Echo.Shout", "early", &reply); err == nil {
				t.Errorf("calling before connecting should fail")
			}
			if err := client.Connect(); err != nil {
				t.Fatalf("Connect: %v", err)
			}
			if err := client.Call("Echo.Shout", "fractal", &reply); err != nil || reply != "FRACTAL" {
				t.Errorf("Shout = %q, %v", reply, err)
			}

			var nothing misc.Nothing
			err = client.Call("Echo.Finished", nothing, &nothing)
			if !IsDone(err) {
				t.Errorf("expected the done error to survive the wire, got %v", err)
			}
			if err := client.Call("Echo.Missing", nothing, &nothing); err == nil || IsDone(err) {
				t.Errorf("unexpected error for a missing method: %v", err)
			}

			if err := client.Disconnect(); err != nil {
				t.Errorf("Disconnect: %v", err)
			}
			if err := client.Disconnect(); err == nil {
				t.Errorf("disconnecting twice should fail")
			}
			if err := server.Stop(); err != nil {
				t.Errorf("Stop: %v", err)
			}
			if err := server.Stop(); err != nil {
				t.Errorf("second Stop: %v", err)
			}
		})
	}
}

func TestServerRegisterError(t *testing.T) {
	if err := NewTcpServer(&quiet{}, "127.0.0.1:0", "Quiet").Run(); err == nil {
		t.Errorf("registering an object without methods should fail")
	}
}

func TestParseTransport(t *testing.T) {
	for name, want := range map[string]string{"": Tcp, "TCP": Tcp, "http": Http} {
		if got, err := ParseTransport(name); err != nil || got != want {
			t.Errorf("ParseTransport(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseTransport("udp"); err == nil {
		t.Errorf("expected an error for udp")
	}
	if _, err := NewServer("udp", &Echo{}, "", ""); err == nil {
		t.Errorf("expected an error for udp")
	}
}
