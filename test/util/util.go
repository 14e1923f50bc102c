// Package util provides helpers shared by tests that need real services.
//
// Each Start function launches a disposable Docker container through
// testcontainers-go and returns a connection string and a cleanup function.
// Callers should skip when RequireDocker reports Docker is not available.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// Default timeouts for helper operations
	MosquittoReadyTimeout = 5 * time.Second
	ContainerStartTimeout = 60 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// RequireDocker skips the test unless DOCKER_AVAILABLE is "true" or "1".
func RequireDocker(t testing.TB) {
	t.Helper()
	if v := os.Getenv("DOCKER_AVAILABLE"); v != "true" && v != "1" {
		t.Skip("docker not available")
	}
}

// WaitForMetric polls the given metrics URL until the provided substring is
// found in the output or the context is done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// StartRedis launches a Redis server and returns its host:port address.
func StartRedis(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(ContainerStartTimeout),
	}
	cont, host, port, err := start(ctx, req, "6379")
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s:%s", host, port), terminate(cont), nil
}

// StartPostgres launches PostgreSQL and returns a DSN for the "advisor"
// database.
func StartPostgres(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "advisor",
			"POSTGRES_PASSWORD": "advisor",
			"POSTGRES_DB":       "advisor",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(ContainerStartTimeout),
	}
	cont, host, port, err := start(ctx, req, "5432")
	if err != nil {
		return "", nil, err
	}
	dsn := fmt.Sprintf("postgres://advisor:advisor@%s:%s/advisor?sslmode=disable", host, port)
	return dsn, terminate(cont), nil
}

// InfluxDB credentials configured by StartInfluxDB.
const (
	InfluxToken  = "advisor-token"
	InfluxOrg    = "advisor"
	InfluxBucket = "advisor"
)

// StartInfluxDB launches InfluxDB 2 with an initialized org, bucket and token
// and returns its base URL.
func StartInfluxDB(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "advisor",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "advisor-password",
			"DOCKER_INFLUXDB_INIT_ORG":         InfluxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      InfluxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": InfluxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(ContainerStartTimeout),
	}
	cont, host, port, err := start(ctx, req, "8086")
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("http://%s:%s", host, port), terminate(cont), nil
}

// StartMosquitto launches a temporary Mosquitto broker inside a Docker
// container and returns its broker URL along with a cleanup function.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, host, port, err := start(ctx, req, "1883")
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		terminate(cont)()
		_ = os.RemoveAll(dir)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port)

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

func start(ctx context.Context, req tc.ContainerRequest, port string) (tc.Container, string, string, error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, "", "", err
	}
	host, err := cont.Host(ctx)
	if err != nil {
		terminate(cont)()
		return nil, "", "", err
	}
	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		terminate(cont)()
		return nil, "", "", err
	}
	return cont, host, mapped.Port(), nil
}

func terminate(cont tc.Container) func() {
	return func() { _ = cont.Terminate(context.Background()) }
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
