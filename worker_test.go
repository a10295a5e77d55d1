package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestModelWorkerSubmit(t *testing.T) {
	detector := &fakeDetector{boxes: []LayoutBox{box("text", 0, 0, 5, 5)}}
	worker := startModelWorker(NewPipeline(detector, DefaultConfig()))
	defer worker.Stop()

	img := newTestMat(20, 20, 0)
	defer img.Close()
	for i := 0; i < 3; i++ {
		result, err := worker.Submit(context.Background(), img, "a.png")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if len(result.Boxes) != 1 {
			t.Errorf("result = %+v", result)
		}
	}
	if detector.calls != 3 {
		t.Errorf("detector calls = %d, want 3", detector.calls)
	}
}

func TestModelWorkerSubmitAfterStop(t *testing.T) {
	detector := &fakeDetector{}
	worker := startModelWorker(NewPipeline(detector, DefaultConfig()))
	worker.Stop()
	worker.Stop()

	img := newTestMat(20, 20, 0)
	defer img.Close()
	_, err := worker.Submit(context.Background(), img, "late.png")
	if !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("err = %v, want ErrWorkerStopped", err)
	}
	if detector.calls != 0 {
		t.Error("detector called after Stop")
	}
}

func TestModelWorkerCancelled(t *testing.T) {
	worker := startModelWorker(NewPipeline(&fakeDetector{}, DefaultConfig()))
	defer worker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := newTestMat(20, 20, 0)
	defer img.Close()
	if _, err := worker.Submit(ctx, img, "x.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunModelAfterStop(t *testing.T) {
	worker := startModelWorker(NewPipeline(&fakeDetector{}, DefaultConfig()))
	router := newRouter(worker, "")
	worker.Stop()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/runmodel", bytes.NewReader(pngBytes(t, 10, 10))))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d (%s)", rec.Code, http.StatusServiceUnavailable, rec.Body.String())
	}
}
