package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	kgo "github.com/segmentio/kafka-go"

	vkafka "github.com/MMMarcy/voxlume/internal/kafka"
	"github.com/MMMarcy/voxlume/internal/models"
	"github.com/MMMarcy/voxlume/mocks"
)

var testTopics = vkafka.Topics{Ingested: "voxlume.ingested", DeadLetter: "voxlume.dlq"}

func TestProducerPublishIngested(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := vkafka.NewProducerWithWriter(writer, testTopics)

	event := models.IngestedAudiobook{
		RunID:      "run-1",
		Path:       "/b1",
		Title:      "T",
		Authors:    []string{"A"},
		IngestedAt: time.Unix(0, 0).UTC(),
	}

	writer.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kgo.Message) error {
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d", len(msgs))
			}
			if msgs[0].Topic != testTopics.Ingested {
				t.Fatalf("unexpected topic: %s", msgs[0].Topic)
			}
			if string(msgs[0].Key) != event.Path {
				t.Fatalf("unexpected message key: %s", string(msgs[0].Key))
			}
			var got models.IngestedAudiobook
			if err := json.Unmarshal(msgs[0].Value, &got); err != nil {
				t.Fatalf("failed to decode message: %v", err)
			}
			if got.Path != event.Path || got.Title != event.Title || got.RunID != event.RunID {
				t.Fatalf("unexpected payload: %+v", got)
			}
			return nil
		})

	if err := prod.PublishIngested(context.Background(), event); err != nil {
		t.Fatalf("PublishIngested returned error: %v", err)
	}
}

func TestProducerPublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := vkafka.NewProducerWithWriter(writer, testTopics)

	failure := models.CrawlFailure{
		Kind:  models.PageKindDetail,
		URL:   "https://audiobookbay.lu/abss/x/",
		Stage: "extract",
		Error: "extraction returned no result",
	}
	writer.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kgo.Message) error {
			if msgs[0].Topic != testTopics.DeadLetter {
				t.Fatalf("unexpected topic: %s", msgs[0].Topic)
			}
			if string(msgs[0].Key) != failure.URL {
				t.Fatalf("unexpected key: %s", string(msgs[0].Key))
			}
			return nil
		})

	if err := prod.PublishFailure(context.Background(), failure); err != nil {
		t.Fatalf("PublishFailure returned error: %v", err)
	}
}

func TestProducerSkipsUnconfiguredTopic(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := vkafka.NewProducerWithWriter(writer, vkafka.Topics{Ingested: "voxlume.ingested"})

	if err := prod.PublishFailure(context.Background(), models.CrawlFailure{URL: "u"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestProducerWriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := vkafka.NewProducerWithWriter(writer, testTopics)

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("write failed"))
	if err := prod.PublishIngested(context.Background(), models.IngestedAudiobook{Path: "/b1"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
