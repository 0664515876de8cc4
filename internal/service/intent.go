package service

import (
	"context"
	"math"
	"regexp"
	"strings"

	"chatbot/internal/model"
	"chatbot/internal/utils"
)

// IntentDefinition is a named intent with ordered regex patterns and an
// ordered response template. Definitions are static and loaded at startup.
type IntentDefinition struct {
	Name     string
	Patterns []*regexp.Regexp
	Template []string
}

// domainKeywords is the bag of domain terms scanned by substring containment.
// Each hit adds a small bonus to an intent's confidence.
var domainKeywords = []string{
	"camaras de seguridad", "transmision en tiempo real", "grabacion en la nube",
	"vision nocturna", "seguimiento en vivo", "alertas de video", "acceso remoto",
	"evidencia visual", "monitoreo 24 7", "deteccion de movimiento",
	"centro de control", "vigilancia continua", "seguimiento en tiempo real",
	"soporte 24 7", "atencion personalizada", "alertas inmediatas", "respaldo de seguridad",
	"supervision activa", "intervencion rapida", "gestion de incidentes",
	"gps", "rastreo satelital", "localizacion en tiempo real",
	"geocercas", "rutas optimizadas", "informes de viaje", "historial de recorridos",
	"velocidad promedio", "tiempo de parada", "mantenimiento predictivo", "telemetria",
	"diagnostico remoto", "comportamiento del conductor", "analisis de datos",
	"integracion con flotas", "movilidad inteligente", "vehiculos conectados",
	"iot", "internet de las cosas", "plataforma de gestion", "aplicaciones moviles",
	"interfaz de usuario", "reportes personalizados", "seguimiento de activos",
	"control de flotas", "optimizacion de rutas", "reduccion de costos",
	"seguridad vehicular", "monitoreo de temperatura", "control de acceso",
	"sistemas de alarmas", "gestion de combustible", "eficiencia operativa",
	"rastreo de motos", "rastreo de camiones", "rastreo de maquinaria",
	"rastreo de trailers", "rastreo de autobuses", "rastreo de bicicletas",
	"vehiculos electricos", "carros hibridos", "instalacion gps",
}

func mustPatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}
	return patterns
}

// intentDefinitions is evaluated in order; ties go to the first-seen intent
var intentDefinitions = []IntentDefinition{
	{
		Name:     "cotizacion_gps",
		Patterns: mustPatterns(`cotiza[rc]?.*gps`, `precio.*gps`, `costo.*rastreo`, `cuanto.*cuesta.*gps`, `quiero.*cotizar`, `necesito.*precio`),
		Template: []string{
			"¡Excelente! Te puedo ayudar con una cotización de GPS. Para darte el mejor precio necesito saber:",
			"📍 ¿Qué tipo de vehículo quieres rastrear? (auto, moto, camión, etc.)",
			"📊 ¿Cuántos vehículos necesitas rastrear?",
			"🏢 ¿Es para uso personal o empresarial?",
			"📍 ¿En qué ciudad o zona te encuentras?",
		},
	},
	{
		Name:     "cotizacion_camaras",
		Patterns: mustPatterns(`cotiza[rc]?.*camara`, `precio.*camara`, `costo.*video`, `cuanto.*cuesta.*camara`, `vigilancia`, `seguridad.*video`),
		Template: []string{
			"¡Perfecto! Las cámaras de seguridad son una excelente inversión. Para cotizarte necesito:",
			"📹 ¿Cuántas cámaras necesitas?",
			"🏠 ¿Es para casa, negocio o vehículo?",
			"🌙 ¿Necesitas visión nocturna?",
			"📱 ¿Quieres acceso remoto desde tu celular?",
			"📍 ¿En qué zona vas a instalar?",
		},
	},
	{
		Name:     "informacion_servicios",
		Patterns: mustPatterns(`que.*servicios`, `como.*funciona`, `informacion`, `caracteristicas`, `beneficios`, `ventajas`),
		Template: []string{
			"🚗 **Nuestros Servicios** 🚗",
			"",
			"📍 **GPS Satelital:**",
			"• Rastreo en tiempo real 24/7",
			"• Historial de rutas y paradas",
			"• Geocercas y alertas",
			"• App móvil gratuita",
			"",
			"📹 **Cámaras de Seguridad:**",
			"• Grabación en la nube",
			"• Visión nocturna",
			"• Acceso remoto",
			"• Detección de movimiento",
			"",
			"⚡ **Centro de Monitoreo 24/7**",
			"• Atención inmediata",
			"• Intervención en emergencias",
			"• Soporte técnico especializado",
			"",
			"¿Te interesa algún servicio en particular? 🤔",
		},
	},
	{
		Name:     "instalacion",
		Patterns: mustPatterns(`como.*instalar`, `instalacion`, `donde.*instalan`, `cuanto.*tarda.*instalar`, `proceso.*instalacion`),
		Template: []string{
			"🔧 **Proceso de Instalación:**",
			"",
			"1️⃣ **Agendar cita** (gratuita a domicilio)",
			"2️⃣ **Instalación profesional** (30-45 min)",
			"3️⃣ **Configuración y pruebas**",
			"4️⃣ **Capacitación en la app**",
			"",
			"✅ Instalación certificada",
			"✅ 1 año de garantía",
			"✅ Sin afectar garantía del vehículo",
			"",
			"¿En qué zona necesitas la instalación? 📍",
		},
	},
	{
		// no template: falls back to the keyword responder
		Name:     "soporte_tecnico",
		Patterns: mustPatterns(`soporte`, `ayuda`, `problema`, `no.*funciona`, `tecnico`, `falla`, `error`),
	},
	{
		Name:     "vehiculos_especiales",
		Patterns: mustPatterns(`carro.*electrico`, `vehiculo.*hibrido`, `moto.*electrica`, `puede.*instalar.*en`, `compatible.*con`),
		Template: []string{
			"¡Claro! Nuestros dispositivos GPS son totalmente compatibles con:",
			"🔋 Vehículos eléctricos (Tesla, Nissan Leaf, etc.)",
			"⚡ Vehículos híbridos",
			"🏍️ Motocicletas eléctricas",
			"🚛 Camiones eléctricos",
			"",
			"La instalación es segura y no afecta la garantía del vehículo.",
			"¿Te gustaría una cotización para tu vehículo específico? 🚗",
		},
	},
	{
		Name:     "saludo",
		Patterns: mustPatterns(`hola`, `buenos.*dias`, `buenas.*tardes`, `buenas.*noches`, `saludos`, `que.*tal`, `hi`, `hello`),
		Template: []string{
			"¡Hola! 👋 Soy tu asistente de rastreo satelital",
			"Estoy aquí para ayudarte con:",
			"📍 Rastreo GPS satelital",
			"📹 Cámaras de seguridad",
			"🛡️ Monitoreo 24/7",
			"",
			"¿En qué te puedo ayudar hoy? 😊",
		},
	},
	{
		Name:     "despedida",
		Patterns: mustPatterns(`adios`, `hasta.*luego`, `nos.*vemos`, `gracias`, `bye`, `chau`, `hasta.*pronto`),
		Template: []string{
			"¡Gracias por contactarnos! 😊",
			"📞 Si tienes más preguntas, estoy aquí 24/7",
			"🌐 Visita: gpscontrol.mx",
			"¡Que tengas excelente día! 🌟",
		},
	},
}

// IntentRuleEngine classifies messages against ordered regex intent patterns
// plus the domain keyword bag, and maps intents to canned response templates.
type IntentRuleEngine struct {
	definitions []IntentDefinition
}

// NewIntentRuleEngine creates the rule engine with the static definitions
func NewIntentRuleEngine() *IntentRuleEngine {
	return &IntentRuleEngine{definitions: intentDefinitions}
}

// Name identifies the stage in logs
func (e *IntentRuleEngine) Name() string { return "intent_rules" }

// Attempt implements the resolver stage contract. Low confidence is data,
// not an error: the result is always returned and the resolver decides
// whether to accept it.
func (e *IntentRuleEngine) Attempt(ctx context.Context, message, userID string, channel model.Channel) (*model.ResolutionResult, error) {
	intent, confidence := e.Classify(message)
	return &model.ResolutionResult{
		Response:   e.Respond(intent, message),
		Intent:     intent,
		Confidence: confidence,
	}, nil
}

// Classify returns the best (intent, confidence) for a message. Confidence is
// min(0.9, (patternScore + keywordHits*0.1) / matchedPatterns) per intent;
// ("general", 0.0) when no pattern matches anywhere.
func (e *IntentRuleEngine) Classify(message string) (string, float64) {
	normalized := utils.Normalize(message)

	keywordHits := 0
	for _, keyword := range domainKeywords {
		if strings.Contains(normalized, keyword) {
			keywordHits++
		}
	}

	bestIntent := "general"
	bestScore := 0.0

	for _, def := range e.definitions {
		score := 0
		matched := 0
		for _, pattern := range def.Patterns {
			if n := len(pattern.FindAllString(normalized, -1)); n > 0 {
				matched++
				score += n
			}
		}
		if matched == 0 {
			continue
		}

		confidence := math.Min(0.9, (float64(score)+float64(keywordHits)*0.1)/float64(matched))
		if confidence > bestScore {
			bestScore = confidence
			bestIntent = def.Name
		}
	}

	return bestIntent, bestScore
}

// Respond returns the canned response for an intent, joining its template
// lines with newlines. Intents without a template fall back to the keyword
// sniffing responder.
func (e *IntentRuleEngine) Respond(intent, message string) string {
	for _, def := range e.definitions {
		if def.Name == intent && len(def.Template) > 0 {
			return strings.Join(def.Template, "\n")
		}
	}
	return e.keywordResponse(message)
}

// keywordResponse answers messages with no template by sniffing for price,
// how-it-works and installation phrasing, in that priority order.
func (e *IntentRuleEngine) keywordResponse(message string) string {
	normalized := utils.Normalize(message)

	if containsAny(normalized, "precio", "costo", "cuanto") {
		return "Para darte un precio exacto necesito conocer más detalles. " +
			"¿Podrías decirme qué tipo de servicio te interesa: GPS, cámaras o ambos?"
	}

	if containsAny(normalized, "como funciona", "que incluye") {
		return "Nuestro sistema incluye:\n" +
			"📍 Rastreo satelital 24/7\n" +
			"📱 App móvil gratuita\n" +
			"🛡️ Centro de monitoreo\n" +
			"⚡ Alertas en tiempo real\n\n" +
			"¿Te gustaría más información sobre algún servicio específico?"
	}

	if containsAny(normalized, "instalacion", "instalar") {
		return "La instalación es muy sencilla:\n" +
			"✅ Agendamos cita gratuita\n" +
			"✅ Técnico certificado va a tu ubicación\n" +
			"✅ Instalación en 30-45 minutos\n" +
			"✅ Te enseñamos a usar la app\n\n" +
			"¿En qué zona necesitas la instalación?"
	}

	return "¡Hola! Soy tu asistente virtual 🤖\n\n" +
		"Te puedo ayudar con:\n" +
		"📍 Cotizaciones de GPS\n" +
		"📹 Cámaras de seguridad\n" +
		"🔧 Información de instalación\n" +
		"📞 Soporte técnico\n\n" +
		"¿Qué servicio te interesa? 😊"
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
