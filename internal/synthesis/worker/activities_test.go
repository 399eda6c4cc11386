package worker

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

type fakeTTS struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeTTS) Synthesize(_ context.Context, _ string, _ voice.Profile) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakeUploader struct {
	keys         []string
	contentTypes []string
	public       []bool
	err          error
}

func (f *fakeUploader) Upload(_ context.Context, key string, r io.Reader, contentType string, public bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.contentTypes = append(f.contentTypes, contentType)
	f.public = append(f.public, public)
	return "https://storage.googleapis.com/test/" + key, nil
}

func testJob() synthesis.Job {
	return synthesis.Job{
		Key:    "lesson-tts-abc123def0-001",
		Input:  "こんにちは",
		Voice:  voice.Profile{LanguageCode: "ja-JP", Model: "tts-1", Name: "nova", Format: "mp3"},
		Output: synthesis.Target{Folder: "lesson-audios/abc123def0", Filename: "abc123def0-001.mp3"},
		Upload: &synthesis.UploadOptions{ContentType: "audio/mp3", Public: true},
	}
}

func TestSynthesizeUploadsUnderFolder(t *testing.T) {
	tts := &fakeTTS{audio: []byte("mp3-bytes")}
	up := &fakeUploader{}
	acts := &Activities{Log: logger.NewNop(), TTS: tts, Bucket: up}

	url, err := acts.Synthesize(context.Background(), testJob())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(up.keys) != 1 || up.keys[0] != "lesson-audios/abc123def0/abc123def0-001.mp3" {
		t.Fatalf("keys: %#v", up.keys)
	}
	if up.contentTypes[0] != "audio/mp3" || !up.public[0] {
		t.Fatalf("upload opts: %v %v", up.contentTypes, up.public)
	}
	if url == "" {
		t.Fatal("expected artifact url")
	}
}

func TestSynthesizeTTSFailurePropagates(t *testing.T) {
	tts := &fakeTTS{err: fmt.Errorf("model overloaded")}
	up := &fakeUploader{}
	acts := &Activities{Log: logger.NewNop(), TTS: tts, Bucket: up}

	if _, err := acts.Synthesize(context.Background(), testJob()); err == nil {
		t.Fatal("expected error")
	}
	if len(up.keys) != 0 {
		t.Fatalf("nothing should be uploaded: %#v", up.keys)
	}
}

func TestReportFailureWithoutReturnChannelIsSilent(t *testing.T) {
	acts := &Activities{Log: logger.NewNop()}
	if err := acts.ReportFailure(context.Background(), testJob(), "tts unavailable"); err != nil {
		t.Fatalf("ReportFailure: %v", err)
	}
}

func TestSynthesizeUploadFailurePropagates(t *testing.T) {
	tts := &fakeTTS{audio: []byte("mp3-bytes")}
	up := &fakeUploader{err: fmt.Errorf("bucket unavailable")}
	acts := &Activities{Log: logger.NewNop(), TTS: tts, Bucket: up}

	if _, err := acts.Synthesize(context.Background(), testJob()); err == nil {
		t.Fatal("expected error")
	}
}
