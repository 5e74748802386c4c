package billing

import (
	"strings"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// RIPSProvider datos del prestador de servicios de salud.
type RIPSProvider struct {
	NIT                string
	CodigoHabilitacion string
}

// Valores por defecto de la Res. 2275/2023 cuando la historia clínica no aporta el dato.
const (
	ripsCountryColombia     = "170"
	ripsDefaultMunicipality = "11001"
	ripsUrbanZone           = "01"
	ripsNoDisability        = "NO"
	ripsDefaultBirthDate    = "2000-01-01"
	ripsDefaultDiagnosis    = "Z000"
	ripsConsultationCode    = "890201"
	ripsDefaultProcedure    = "902210"
	ripsTechnologyGeneric   = "GENERICO"
	ripsModalityIntramural  = "01"
	ripsGroupOutpatient     = "01"
	ripsGroupDiagnostic     = "02"
	ripsServiceGeneralMed   = 366
	ripsServiceLaboratory   = 714
	ripsPurposeConsultation = "44"
	ripsPurposeDiagnosis    = "01"
	ripsCauseGeneralIllness = "38"
	ripsDiagnosisImpression = "01"
	ripsModeratorFee        = "05"
	ripsMedicationPOS       = "01"
	ripsMeasureUnit         = "39"
	ripsPharmaForm          = "01"
	ripsMinDispenseUnit     = "01"
	ripsAdmissionReferral   = "01"
	ripsAdmissionEmergency  = "02"
	ripsDischargeAlive      = "01"
	ripsOtherSupplies       = "01"
	ripsDateTimeLayout      = "2006-01-02 15:04"
)

// ripsUserType Tabla tipo de usuario del SGSSS.
func ripsUserType(userType string) string {
	switch strings.ToLower(strings.TrimSpace(userType)) {
	case "contributivo":
		return "01"
	case "subsidiado":
		return "02"
	case "vinculado":
		return "03"
	case "particular":
		return "04"
	case "otro":
		return "05"
	}
	return "01"
}

func ripsSex(gender string) string {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "M", "MASCULINO", "HOMBRE":
		return "M"
	case "F", "FEMENINO", "MUJER":
		return "F"
	}
	return "I"
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// buildRIPSDocument arma el documento RIPS de una factura pagada. Cada ítem se ubica en el
// grupo de servicios que corresponde a su tipo; los consecutivos se numeran por grupo.
func buildRIPSDocument(provider RIPSProvider, inv *entity.Invoice, patient *entity.Patient) dto.RIPSDocument {
	docType := pkgdian.DocTypeAbbreviation(firstNonEmpty(patient.DocumentType, inv.Patient.DocumentType))
	docNumber := firstNonEmpty(patient.DocumentNumber, inv.Patient.DocumentNumber)
	attended := inv.IssuedAt.In(bogota).Format(ripsDateTimeLayout)
	auth := optional(inv.InsuranceAuthorization)

	birth := ripsDefaultBirthDate
	if patient.BirthDate != nil {
		birth = patient.BirthDate.Format("2006-01-02")
	}
	municipality := patient.MunicipalityCode
	if municipality == "" {
		municipality = ripsDefaultMunicipality
	}

	var s dto.RIPSServicios
	for _, it := range inv.Items {
		desc := strings.TrimSpace(it.Description)
		switch it.Type {
		case entity.ItemTypeConsultation:
			s.Consultas = append(s.Consultas, dto.RIPSConsulta{
				CodPrestador:                 provider.CodigoHabilitacion,
				FechaInicioAtencion:          attended,
				NumAutorizacion:              auth,
				CodConsulta:                  ripsConsultationCode,
				ModalidadGrupoServicioTecSal: ripsModalityIntramural,
				GrupoServicios:               ripsGroupOutpatient,
				CodServicio:                  ripsServiceGeneralMed,
				FinalidadTecnologiaSalud:     ripsPurposeConsultation,
				CausaMotivoAtencion:          ripsCauseGeneralIllness,
				CodDiagnosticoPrincipal:      ripsDefaultDiagnosis,
				TipoDiagnosticoPrincipal:     ripsDiagnosisImpression,
				TipoDocumentoIdentificacion:  docType,
				NumDocumentoIdentificacion:   docNumber,
				VrServicio:                   it.Subtotal,
				TipoPagoModerador:            ripsModeratorFee,
				VrPagoModerador:              money.Zero,
				Consecutivo:                  len(s.Consultas) + 1,
			})
		case entity.ItemTypeMedicalOrder:
			s.Procedimientos = append(s.Procedimientos, dto.RIPSProcedimiento{
				CodPrestador:                 provider.CodigoHabilitacion,
				FechaInicioAtencion:          attended,
				NumAutorizacion:              auth,
				CodProcedimiento:             ripsDefaultProcedure,
				ViaIngresoServicioSalud:      ripsAdmissionReferral,
				ModalidadGrupoServicioTecSal: ripsModalityIntramural,
				GrupoServicios:               ripsGroupDiagnostic,
				CodServicio:                  ripsServiceLaboratory,
				FinalidadTecnologiaSalud:     ripsPurposeDiagnosis,
				TipoDocumentoIdentificacion:  docType,
				NumDocumentoIdentificacion:   docNumber,
				CodDiagnosticoPrincipal:      ripsDefaultDiagnosis,
				VrServicio:                   it.Subtotal,
				VrPagoModerador:              money.Zero,
				Consecutivo:                  len(s.Procedimientos) + 1,
			})
		case entity.ItemTypeMedication:
			s.Medicamentos = append(s.Medicamentos, dto.RIPSMedicamento{
				CodPrestador:                provider.CodigoHabilitacion,
				NumAutorizacion:             auth,
				FechaDispensAdmon:           attended,
				CodDiagnosticoPrincipal:     ripsDefaultDiagnosis,
				TipoMedicamento:             ripsMedicationPOS,
				CodTecnologiaSalud:          ripsTechnologyGeneric,
				NomTecnologiaSalud:          desc,
				UnidadMedida:                ripsMeasureUnit,
				FormaFarmaceutica:           ripsPharmaForm,
				UnidadMinDispensa:           ripsMinDispenseUnit,
				CantidadMedicamento:         it.Quantity,
				DiasTratamiento:             1,
				TipoDocumentoIdentificacion: docType,
				NumDocumentoIdentificacion:  docNumber,
				VrUnitMedicamento:           it.UnitPrice,
				VrServicio:                  it.Subtotal,
				VrPagoModerador:             money.Zero,
				Consecutivo:                 len(s.Medicamentos) + 1,
			})
		case entity.ItemTypeHospitalization:
			s.Hospitalizacion = append(s.Hospitalizacion, dto.RIPSHospitalizacion{
				CodPrestador:                  provider.CodigoHabilitacion,
				ViaIngresoServicioSalud:       ripsAdmissionEmergency,
				FechaInicioAtencion:           attended,
				NumAutorizacion:               auth,
				CausaMotivoAtencion:           ripsCauseGeneralIllness,
				CodDiagnosticoPrincipal:       ripsDefaultDiagnosis,
				CodDiagnosticoPrincipalE:      ripsDefaultDiagnosis,
				CondicionDestinoUsuarioEgreso: ripsDischargeAlive,
				FechaEgreso:                   attended,
				VrServicio:                    it.Subtotal,
				Consecutivo:                   len(s.Hospitalizacion) + 1,
			})
		default:
			s.OtrosServicios = append(s.OtrosServicios, dto.RIPSOtroServicio{
				CodPrestador:                provider.CodigoHabilitacion,
				NumAutorizacion:             auth,
				FechaSuministroTecnologia:   attended,
				TipoOS:                      ripsOtherSupplies,
				CodTecnologiaSalud:          ripsTechnologyGeneric,
				NomTecnologiaSalud:          desc,
				CantidadOS:                  it.Quantity,
				TipoDocumentoIdentificacion: docType,
				NumDocumentoIdentificacion:  docNumber,
				VrUnitOS:                    it.UnitPrice,
				VrServicio:                  it.Subtotal,
				VrPagoModerador:             money.Zero,
				Consecutivo:                 len(s.OtrosServicios) + 1,
			})
		}
	}

	return dto.RIPSDocument{
		NumDocumentoIdObligado: pkgdian.OnlyDigits(provider.NIT),
		NumFactura:             inv.Number,
		Usuarios: []dto.RIPSUsuario{{
			TipoDocumentoIdentificacion:  docType,
			NumDocumentoIdentificacion:   docNumber,
			TipoUsuario:                  ripsUserType(patient.UserType),
			FechaNacimiento:              birth,
			CodSexo:                      ripsSex(patient.Gender),
			CodPaisResidencia:            ripsCountryColombia,
			CodMunicipioResidencia:       municipality,
			CodZonaTerritorialResidencia: ripsUrbanZone,
			Incapacidad:                  ripsNoDisability,
			Consecutivo:                  1,
			CodPaisOrigen:                ripsCountryColombia,
			Servicios:                    s,
		}},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
