package email

const subjectImportSummary = "Resumen de importación de prospectos"
