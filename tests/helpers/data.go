// data.go
//
// Persistence and API service for a cohort-scoped anonymous song message board
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of menfessdb.
// menfessdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// menfessdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with menfessdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/localnerve/menfessdb/internal/models"
	"github.com/localnerve/menfessdb/internal/services"
	"github.com/localnerve/menfessdb/internal/types"
	"gorm.io/gorm"
)

// Board is a seeded message board: one sender per batch and the messages each submitted
type Board struct {
	Senders  map[models.Batch]*types.Identity
	Messages map[models.Batch][]uint64
}

// SeedBoard registers one sender per batch and submits perBatch messages visible to each batch
func SeedBoard(t *testing.T, db *gorm.DB, perBatch int) *Board {
	t.Helper()
	ctx := context.Background()

	board := &Board{
		Senders:  map[models.Batch]*types.Identity{},
		Messages: map[models.Batch][]uint64{},
	}
	for _, batch := range models.Batches {
		sender := RegisterAccount(t, db, batch)
		board.Senders[batch] = sender

		for i := 0; i < perBatch; i++ {
			id, err := services.SubmitMessage(ctx, db, NewSubmission(batch, i), sender)
			if err != nil {
				t.Fatalf("Failed to submit message: %v", err)
			}
			board.Messages[batch] = append(board.Messages[batch], id)
		}
	}
	return board
}

// NewSubmission returns a valid submission for batch, numbered n
func NewSubmission(batch models.Batch, n int) services.SubmissionInput {
	return services.SubmissionInput{
		ReceiverName:    fmt.Sprintf("Receiver %d", n),
		Message:         fmt.Sprintf("message %d for %s", n, batch),
		SongTitle:       fmt.Sprintf("Song %d", n),
		SongArtist:      "Artist",
		SongURL:         fmt.Sprintf("https://open.spotify.com/track/%s-%d", batch, n),
		BatchVisibility: batch,
		IsAnonymous:     n%2 == 1,
	}
}

// Total returns how many messages were seeded
func (b *Board) Total() int {
	n := 0
	for _, ids := range b.Messages {
		n += len(ids)
	}
	return n
}
