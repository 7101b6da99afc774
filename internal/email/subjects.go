package email

const (
	subjectAppointmentConfirmationFmt = "Cita confirmada para el %s"
	subjectAppointmentReminderFmt     = "Recordatorio: cita el %s a las %s"
	subjectFollowUpReminderFmt        = "Seguimiento pendiente con %s"
	subjectLeadAssignedFmt            = "Nuevo lead asignado: %s"
)
