package quote

import (
	"context"
	"fmt"
	"time"

	"campusride/config"
	quoteRepo "campusride/database/repository/quote"
	"campusride/models"
	"campusride/services/mailer"
	"campusride/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService handles business carpooling quote requests.
type QuoteService interface {
	// Submit stores the request, emails the sales inbox and acknowledges the
	// contact. Mail failures are logged; the stored quote is the deliverable.
	Submit(ctx context.Context, q *models.BusinessQuote) (*models.BusinessQuote, error)
	// List returns all submitted quotes. Admin only.
	List() ([]models.BusinessQuote, error)
}

// DefaultQuoteService implements QuoteService.
type DefaultQuoteService struct {
	Repo   quoteRepo.QuoteRepository
	Mailer mailer.Mailer
}

func (s *DefaultQuoteService) Submit(ctx context.Context, q *models.BusinessQuote) (*models.BusinessQuote, error) {
	logger := utils.GetLogger()

	q.ID = uuid.New().String()
	q.CreatedAt = time.Now()
	if err := s.Repo.Insert(q); err != nil {
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}

	if s.Mailer != nil {
		if sales := config.AppConfig.SalesEmail; sales != "" {
			body := fmt.Sprintf(
				"<p>Nouvelle demande de devis :</p>"+
					"<ul><li>Entreprise : %s</li><li>Contact : %s (%s)</li><li>Effectif : %d</li>"+
					"<li>Trajet : %s → %s</li><li>Date : %s</li></ul><p>%s</p>",
				q.CompanyName, q.ContactName, q.ContactEmail, q.Headcount,
				q.Depart, q.Destination, q.Date, q.Notes)
			if err := s.Mailer.Send(ctx, sales, "Demande de devis "+q.CompanyName, body); err != nil {
				logger.Warn("failed to forward quote to sales", zap.String("quoteId", q.ID), zap.Error(err))
			}
		}
		ack := fmt.Sprintf("<p>Bonjour %s,</p><p>Nous avons bien reçu votre demande de devis pour %s. Notre équipe revient vers vous sous 48h.</p>",
			q.ContactName, q.CompanyName)
		if err := s.Mailer.Send(ctx, q.ContactEmail, "Votre demande de devis", ack); err != nil {
			logger.Warn("failed to acknowledge quote", zap.String("quoteId", q.ID), zap.Error(err))
		}
	}

	logger.Info("business quote submitted", zap.String("quoteId", q.ID), zap.String("company", q.CompanyName))
	return q, nil
}

func (s *DefaultQuoteService) List() ([]models.BusinessQuote, error) {
	return s.Repo.List()
}
