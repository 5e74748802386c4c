package dian

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// devTechnicalKey clave técnica usada en desarrollo cuando no se configura una.
const devTechnicalKey = "clave-tecnica-desarrollo"

// SimulatedAuthority modo dev: genera CUFE, XML, firma (si hay certificado) y ZIP igual que
// el adaptador real, pero no llama al WS DIAN. El envío queda PENDIENTE y la primera
// consulta de estado lo acepta.
type SimulatedAuthority struct {
	cfg     AuthorityConfig
	builder *XMLBuilderService
	signer  pkgdian.Signer
	log     *logger.Logger
}

var _ billing.ElectronicAuthority = (*SimulatedAuthority)(nil)

// NewSimulatedAuthority signer puede ser nil.
func NewSimulatedAuthority(cfg AuthorityConfig, builder *XMLBuilderService, signer pkgdian.Signer, log *logger.Logger) *SimulatedAuthority {
	if cfg.TechnicalKey == "" {
		cfg.TechnicalKey = devTechnicalKey
	}
	if cfg.TipoAmbiente == "" {
		cfg.TipoAmbiente = pkgdian.AmbientePruebas
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatedAuthority{cfg: cfg, builder: builder, signer: signer, log: log}
}

func (a *SimulatedAuthority) Submit(_ context.Context, doc *billing.AuthorityDocument) (*billing.AuthoritySubmission, error) {
	build, err := prepareDocument(a.cfg, doc)
	if err != nil {
		return nil, err
	}
	xmlBytes, err := a.builder.Build(build)
	if err != nil {
		return nil, err
	}
	if a.signer != nil {
		if xmlBytes, err = a.signer.Sign(xmlBytes); err != nil {
			return nil, err
		}
	}
	xmlName, zipName := DIANFilenames(a.cfg.Issuer.NIT, a.cfg.Resolution.Prefix, doc.Invoice.Consecutive)
	zipBytes, err := CompressXMLToZip(xmlBytes, xmlName)
	if err != nil {
		return nil, err
	}

	trackID := "SIM-" + uuid.NewString()
	a.log.Info().
		Str("numero", doc.Invoice.Number).
		Str("zip", zipName).
		Int("bytes", len(zipBytes)).
		Bool("firmado", a.signer != nil).
		Str("track_id", trackID).
		Msg("[DEV] envío a la DIAN simulado")

	return &billing.AuthoritySubmission{
		Status:  entity.AuthorityStatusPending,
		CUFE:    build.CUFE,
		TrackID: trackID,
		QRData:  build.QRData,
	}, nil
}

func (a *SimulatedAuthority) QueryStatus(_ context.Context, _ billing.AuthorityStatusQuery) (*billing.AuthorityStatusResult, error) {
	return &billing.AuthorityStatusResult{Status: entity.AuthorityStatusAccepted}, nil
}
