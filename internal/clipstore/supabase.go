package clipstore

import (
	"bytes"
	"context"
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// Supabase stores clips in a Supabase Storage bucket and returns public
// object URLs as references.
type Supabase struct {
	client *supa.Client
	bucket string
}

// NewSupabase creates a Supabase-backed store. The bucket must already exist
// and allow public reads.
func NewSupabase(projectURL, apiKey, bucket string) (*Supabase, error) {
	client, err := supa.NewClient(projectURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}
	return &Supabase{client: client, bucket: bucket}, nil
}

// Save uploads data to the bucket under name and returns its public URL.
func (s *Supabase) Save(_ context.Context, name string, data []byte) (string, error) {
	_, err := s.client.Storage.UploadFile(s.bucket, name, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload clip to bucket %s: %w", s.bucket, err)
	}

	resp := s.client.Storage.GetPublicUrl(s.bucket, name)
	return resp.SignedURL, nil
}
