package dto

import (
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// RIPSExportRequest body para POST /api/facturas/rips/generar.
type RIPSExportRequest struct {
	InvoiceIDs []string `json:"factura_ids" validate:"required,min=1,max=500,dive,required"`
}

// RIPSBatchResponse lote RIPS descargable: un documento por factura pagada,
// ordenados por número de factura.
type RIPSBatchResponse struct {
	GeneratedAt string                  `json:"fechaGeneracion"`
	Documents   []RIPSDocument          `json:"documentos"`
	Skipped     []domain.SkippedInvoice `json:"omitidas"`
	Archive     string                  `json:"archivo,omitempty"`
}

// RIPSDocument documento RIPS de una factura (Res. 2275/2023).
type RIPSDocument struct {
	NumDocumentoIdObligado string        `json:"numDocumentoIdObligado"`
	NumFactura             string        `json:"numFactura"`
	TipoNota               *string       `json:"tipoNota"`
	NumNota                *string       `json:"numNota"`
	Usuarios               []RIPSUsuario `json:"usuarios"`
}

// RIPSUsuario usuario atendido con sus servicios.
type RIPSUsuario struct {
	TipoDocumentoIdentificacion  string        `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string        `json:"numDocumentoIdentificacion"`
	TipoUsuario                  string        `json:"tipoUsuario"`
	FechaNacimiento              string        `json:"fechaNacimiento"`
	CodSexo                      string        `json:"codSexo"`
	CodPaisResidencia            string        `json:"codPaisResidencia"`
	CodMunicipioResidencia       string        `json:"codMunicipioResidencia"`
	CodZonaTerritorialResidencia string        `json:"codZonaTerritorialResidencia"`
	Incapacidad                  string        `json:"incapacidad"`
	Consecutivo                  int           `json:"consecutivo"`
	CodPaisOrigen                string        `json:"codPaisOrigen"`
	Servicios                    RIPSServicios `json:"servicios"`
}

// RIPSServicios servicios agrupados por tipo; los grupos vacíos se omiten.
type RIPSServicios struct {
	Consultas       []RIPSConsulta        `json:"consultas,omitempty"`
	Procedimientos  []RIPSProcedimiento   `json:"procedimientos,omitempty"`
	Medicamentos    []RIPSMedicamento     `json:"medicamentos,omitempty"`
	Hospitalizacion []RIPSHospitalizacion `json:"hospitalizacion,omitempty"`
	OtrosServicios  []RIPSOtroServicio    `json:"otrosServicios,omitempty"`
}

// RIPSConsulta consulta (AC).
type RIPSConsulta struct {
	CodPrestador                 string      `json:"codPrestador"`
	FechaInicioAtencion          string      `json:"fechaInicioAtencion"`
	NumAutorizacion              *string     `json:"numAutorizacion"`
	CodConsulta                  string      `json:"codConsulta"`
	ModalidadGrupoServicioTecSal string      `json:"modalidadGrupoServicioTecSal"`
	GrupoServicios               string      `json:"grupoServicios"`
	CodServicio                  int         `json:"codServicio"`
	FinalidadTecnologiaSalud     string      `json:"finalidadTecnologiaSalud"`
	CausaMotivoAtencion          string      `json:"causaMotivoAtencion"`
	CodDiagnosticoPrincipal      string      `json:"codDiagnosticoPrincipal"`
	TipoDiagnosticoPrincipal     string      `json:"tipoDiagnosticoPrincipal"`
	TipoDocumentoIdentificacion  string      `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string      `json:"numDocumentoIdentificacion"`
	VrServicio                   money.Money `json:"vrServicio"`
	TipoPagoModerador            string      `json:"tipoPagoModerador"`
	VrPagoModerador              money.Money `json:"vrPagoModerador"`
	NumFEVPagoModerador          *string     `json:"numFEVPagoModerador"`
	Consecutivo                  int         `json:"consecutivo"`
}

// RIPSProcedimiento procedimiento (AP).
type RIPSProcedimiento struct {
	CodPrestador                 string      `json:"codPrestador"`
	FechaInicioAtencion          string      `json:"fechaInicioAtencion"`
	IDMIPRES                     *string     `json:"idMIPRES"`
	NumAutorizacion              *string     `json:"numAutorizacion"`
	CodProcedimiento             string      `json:"codProcedimiento"`
	ViaIngresoServicioSalud      string      `json:"viaIngresoServicioSalud"`
	ModalidadGrupoServicioTecSal string      `json:"modalidadGrupoServicioTecSal"`
	GrupoServicios               string      `json:"grupoServicios"`
	CodServicio                  int         `json:"codServicio"`
	FinalidadTecnologiaSalud     string      `json:"finalidadTecnologiaSalud"`
	TipoDocumentoIdentificacion  string      `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string      `json:"numDocumentoIdentificacion"`
	CodDiagnosticoPrincipal      string      `json:"codDiagnosticoPrincipal"`
	VrServicio                   money.Money `json:"vrServicio"`
	TipoPagoModerador            *string     `json:"tipoPagoModerador"`
	VrPagoModerador              money.Money `json:"vrPagoModerador"`
	NumFEVPagoModerador          *string     `json:"numFEVPagoModerador"`
	Consecutivo                  int         `json:"consecutivo"`
}

// RIPSMedicamento medicamento (AM).
type RIPSMedicamento struct {
	CodPrestador                string      `json:"codPrestador"`
	NumAutorizacion             *string     `json:"numAutorizacion"`
	IDMIPRES                    *string     `json:"idMIPRES"`
	FechaDispensAdmon           string      `json:"fechaDispensAdmon"`
	CodDiagnosticoPrincipal     string      `json:"codDiagnosticoPrincipal"`
	TipoMedicamento             string      `json:"tipoMedicamento"`
	CodTecnologiaSalud          string      `json:"codTecnologiaSalud"`
	NomTecnologiaSalud          string      `json:"nomTecnologiaSalud"`
	UnidadMedida                string      `json:"unidadMedida"`
	FormaFarmaceutica           string      `json:"formaFarmaceutica"`
	UnidadMinDispensa           string      `json:"unidadMinDispensa"`
	CantidadMedicamento         int64       `json:"cantidadMedicamento"`
	DiasTratamiento             int         `json:"diasTratamiento"`
	TipoDocumentoIdentificacion string      `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion  string      `json:"numDocumentoIdentificacion"`
	VrUnitMedicamento           money.Money `json:"vrUnitMedicamento"`
	VrServicio                  money.Money `json:"vrServicio"`
	TipoPagoModerador           *string     `json:"tipoPagoModerador"`
	VrPagoModerador             money.Money `json:"vrPagoModerador"`
	NumFEVPagoModerador         *string     `json:"numFEVPagoModerador"`
	Consecutivo                 int         `json:"consecutivo"`
}

// RIPSHospitalizacion hospitalización (AH).
type RIPSHospitalizacion struct {
	CodPrestador                  string      `json:"codPrestador"`
	ViaIngresoServicioSalud       string      `json:"viaIngresoServicioSalud"`
	FechaInicioAtencion           string      `json:"fechaInicioAtencion"`
	NumAutorizacion               *string     `json:"numAutorizacion"`
	CausaMotivoAtencion           string      `json:"causaMotivoAtencion"`
	CodDiagnosticoPrincipal       string      `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoPrincipalE      string      `json:"codDiagnosticoPrincipalE"`
	CondicionDestinoUsuarioEgreso string      `json:"condicionDestinoUsuarioEgreso"`
	FechaEgreso                   string      `json:"fechaEgreso"`
	VrServicio                    money.Money `json:"vrServicio"`
	Consecutivo                   int         `json:"consecutivo"`
}

// RIPSOtroServicio otros servicios (AT).
type RIPSOtroServicio struct {
	CodPrestador                string      `json:"codPrestador"`
	NumAutorizacion             *string     `json:"numAutorizacion"`
	IDMIPRES                    *string     `json:"idMIPRES"`
	FechaSuministroTecnologia   string      `json:"fechaSuministroTecnologia"`
	TipoOS                      string      `json:"tipoOS"`
	CodTecnologiaSalud          string      `json:"codTecnologiaSalud"`
	NomTecnologiaSalud          string      `json:"nomTecnologiaSalud"`
	CantidadOS                  int64       `json:"cantidadOS"`
	TipoDocumentoIdentificacion string      `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion  string      `json:"numDocumentoIdentificacion"`
	VrUnitOS                    money.Money `json:"vrUnitOS"`
	VrServicio                  money.Money `json:"vrServicio"`
	TipoPagoModerador           *string     `json:"tipoPagoModerador"`
	VrPagoModerador             money.Money `json:"vrPagoModerador"`
	NumFEVPagoModerador         *string     `json:"numFEVPagoModerador"`
	Consecutivo                 int         `json:"consecutivo"`
}

// FileName nombre sugerido para descargar el lote.
func (b *RIPSBatchResponse) FileName() string {
	if len(b.Documents) == 0 {
		return "rips.json"
	}
	return "rips_" + b.Documents[0].NumFactura + ".json"
}
