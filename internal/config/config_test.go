package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("QUEUE_NAME", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QueueName != "pdf_extract" {
		t.Fatalf("QueueName: want=%q got=%q", "pdf_extract", cfg.QueueName)
	}
	if cfg.QueueBackend != QueueRedis {
		t.Fatalf("QueueBackend: want=%q got=%q", QueueRedis, cfg.QueueBackend)
	}
	if cfg.StorageBackend != StorageLocal {
		t.Fatalf("StorageBackend: want=%q got=%q", StorageLocal, cfg.StorageBackend)
	}
	if cfg.IsPostgres() {
		t.Fatalf("default database should be sqlite")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("EXTRACTION_TIMEOUT", "30s")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/processos?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QueueBackend != QueueKafka {
		t.Fatalf("QueueBackend: want=%q got=%q", QueueKafka, cfg.QueueBackend)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers: got=%v", cfg.KafkaBrokers)
	}
	if cfg.ExtractionTimeout != 30*time.Second {
		t.Fatalf("ExtractionTimeout: got=%s", cfg.ExtractionTimeout)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Fatalf("WorkerConcurrency: got=%d", cfg.WorkerConcurrency)
	}
	if !cfg.IsPostgres() {
		t.Fatalf("expected postgres DATABASE_URL to be detected")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "sqs")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown queue backend")
	}
}

func TestValidateConcurrency(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("WORKER_CONCURRENCY", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero concurrency")
	}
}
