//go:build integration

package integration_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// startKafka runs a single-node broker for the duration of the test and
// returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("precip-maps-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFixtures writes a two-station table and a small logo into dir.
func writeFixtures(t *testing.T, dir string) (dataPath, logoPath string) {
	t.Helper()
	dataPath = filepath.Join(dir, "datosEstaciones.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"codigo,nombre,region,lat,lon,acumulado,anomalia_mm,anomalia_pct\n"+
			"CR001,Liberia,Pacifico Norte,10.6,-85.4,250,-30,-10\n"+
			"CR002,Limon,Caribe,9.99,-83.03,80,20,35\n"), 0o600))

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for i := 0; i < 30; i++ {
		img.Set(i, i, color.Black)
	}
	logoPath = filepath.Join(dir, "logo.png")
	f, err := os.Create(logoPath)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return dataPath, logoPath
}
