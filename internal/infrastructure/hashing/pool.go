package hashing

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultWorkers = 4
	queueBuffer    = 64
)

type hashJob struct {
	plaintext string
	reply     chan hashResult
}

type hashResult struct {
	hash string
	err  error
}

type verifyJob struct {
	plaintext string
	hash      string
	reply     chan bool
}

// Pool offloads bcrypt work to a fixed set of workers so that hashing cannot
// monopolise request goroutines. It implements ports.CredentialHasher.
type Pool struct {
	cost   int
	hashes chan hashJob
	checks chan verifyJob
	log    zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers hashing at the given bcrypt
// cost. Defaults apply when numWorkers <= 0 or cost is out of range.
func NewPool(numWorkers, cost int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	p := &Pool{
		cost:   cost,
		hashes: make(chan hashJob, queueBuffer),
		checks: make(chan verifyJob, queueBuffer),
		log:    log,
	}
	for i := 0; i < numWorkers; i++ {
		go p.runWorker()
	}
	return p
}

// Hash derives a salted bcrypt hash from plaintext. The salt is random per
// call, so two hashes of the same plaintext differ.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	reply := make(chan hashResult, 1)
	select {
	case p.hashes <- hashJob{plaintext: plaintext, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-reply:
		return res.hash, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Verify reports whether plaintext matches hash. bcrypt's comparison is
// constant-time; a malformed stored hash simply fails verification.
func (p *Pool) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case p.checks <- verifyJob{plaintext: plaintext, hash: hash, reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *Pool) runWorker() {
	for {
		select {
		case job := <-p.hashes:
			hash, err := bcrypt.GenerateFromPassword([]byte(job.plaintext), p.cost)
			if err != nil {
				p.log.Error().Err(err).Msg("password hashing failed")
				job.reply <- hashResult{err: err}
				continue
			}
			job.reply <- hashResult{hash: string(hash)}
		case job := <-p.checks:
			job.reply <- bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.plaintext)) == nil
		}
	}
}
