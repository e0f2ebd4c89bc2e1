package runtime

import (
	"sort"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
)

func TestContainerNameSanitizesAndVaries(t *testing.T) {
	a := containerName("whisper/base v2")
	if !strings.HasPrefix(a, "asrpro-whisper-base-v2-") {
		t.Fatalf("unexpected name: %s", a)
	}
	if strings.ContainsAny(a, "/ ") {
		t.Fatalf("name not sanitized: %s", a)
	}
	b := containerName("whisper/base v2")
	if a == b {
		t.Fatalf("expected unique names, got %s twice", a)
	}
}

func TestRenderEnv(t *testing.T) {
	if got := renderEnv(nil); got != nil {
		t.Fatalf("expected nil for empty env, got %v", got)
	}
	got := renderEnv(map[string]string{"ASR_MODEL": "base", "LOG": "1"})
	sort.Strings(got)
	if len(got) != 2 || got[0] != "ASR_MODEL=base" || got[1] != "LOG=1" {
		t.Fatalf("unexpected env: %v", got)
	}
}

func TestRestartPolicyMapping(t *testing.T) {
	cases := []struct {
		in   string
		want container.RestartPolicyMode
	}{
		{"", container.RestartPolicyDisabled},
		{"no", container.RestartPolicyDisabled},
		{"always", container.RestartPolicyDisabled}, // orchestrator owns restarts
		{"on-failure", container.RestartPolicyOnFailure},
		{"unless-stopped", container.RestartPolicyUnlessStopped},
	}
	for _, tc := range cases {
		if got := restartPolicy(tc.in).Name; got != tc.want {
			t.Fatalf("restartPolicy(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHostPortFor(t *testing.T) {
	port := nat.Port("9000/tcp")
	ports := nat.PortMap{
		port: []nat.PortBinding{
			{HostIP: "127.0.0.1", HostPort: ""},
			{HostIP: "127.0.0.1", HostPort: "49153"},
		},
		nat.Port("8080/tcp"): []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "49154"}},
	}
	if got := hostPortFor(ports, 9000); got != 49153 {
		t.Fatalf("expected 49153, got %d", got)
	}
	if got := hostPortFor(ports, 7000); got != 0 {
		t.Fatalf("expected 0 for unbound port, got %d", got)
	}
}
