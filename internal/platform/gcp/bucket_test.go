package gcp

import "testing"

func TestPublicURLDefaultsToStorageHost(t *testing.T) {
	s := &bucketService{bucketName: "kotoba-media"}
	got := s.PublicURL("audio-cards/abc.mp3")
	want := "https://storage.googleapis.com/kotoba-media/audio-cards/abc.mp3"
	if got != want {
		t.Fatalf("PublicURL: %q", got)
	}
}

func TestPublicURLUsesCDNDomain(t *testing.T) {
	s := &bucketService{bucketName: "kotoba-media", cdnDomain: "media.kotoba.app/"}
	got := s.PublicURL("/lesson-audios/abc123def0.json")
	want := "https://media.kotoba.app/lesson-audios/abc123def0.json"
	if got != want {
		t.Fatalf("PublicURL: %q", got)
	}
}
