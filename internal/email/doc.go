// Package email envía los correos transaccionales del servicio: bienvenida
// (uno por clase de tenant, con la password temporal) y link de reset.
//
// El transporte es SMTP vía go-mail; sin SMTP configurado se usa LogSender,
// que solo registra el envío (dev).
package email
