package auth_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, account helpers and assertions.
 */

const (
	testImageName = "campusauth-test:latest"

	testJWTSecret = "e2e-secret-0123456789abcdef012345"
	testPassword  = "Student123!"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	// Build the Docker image once before all tests
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	// Run all tests
	exitCode := m.Run()

	// Clean up the Docker image after all tests complete
	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by every test.
func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_JWT_SECRET":    testJWTSecret,
		"AUTH_DATABASE_FILE": "/data/auth.db",
		"AUTH_PEPPER_FILE":   "/data/pepper",
		"NOTIFY_DROP_DIR":    "/data/outbox",
		"ENV":                "test",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	}
}

// setupAuthContainer starts the auth service with relaxed rate limits and
// returns the base URL. Tests make many rapid requests which would otherwise
// hit the production limits.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()

	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupAuthContainerWithDefaultRateLimits starts the auth service with DEFAULT rate limits.
// This is specifically for testing that rate limiting actually works.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// registerStudent self-registers a student and returns its session.
func registerStudent(t *testing.T, client *authsdk.SDKClient, email string) *authsdk.Session {
	t.Helper()

	reg, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Name:       "Test Student",
		Email:      email,
		Password:   testPassword,
		StudentID:  "s1234567",
		Department: "Computing",
	})
	require.NoError(t, err, "Registration should succeed")
	require.True(t, reg.Success)

	sess := client.SessionFromRegistration(reg)
	require.NotNil(t, sess, "Registration should return a token")
	return sess
}

// assertAPIError checks err is an *authsdk.APIError with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status for %s", apiErr.Code)
	require.Equal(t, code, apiErr.Code)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
